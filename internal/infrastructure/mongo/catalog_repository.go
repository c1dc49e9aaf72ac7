package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// CatalogRepository は診断カタログを MongoDB から読み出すリポジトリ。
type CatalogRepository struct {
	catalogs *mongo.Collection
}

// NewCatalogRepository は catalogs コレクションを束縛したリポジトリを構築する。
func NewCatalogRepository(db *mongo.Database, collection string) *CatalogRepository {
	return &CatalogRepository{catalogs: db.Collection(collection)}
}

// NewCatalogRepositoryFromCollection は既存のコレクションハンドルから構築する。
func NewCatalogRepositoryFromCollection(coll *mongo.Collection) *CatalogRepository {
	return &CatalogRepository{catalogs: coll}
}

// List は全カタログをキー順で返す。検証に通らないドキュメントが 1 件でもあればエラーにする。
func (r *CatalogRepository) List(ctx context.Context) ([]domain.Catalog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.catalogs.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	catalogs := make([]domain.Catalog, 0)
	for cursor.Next(ctx) {
		var doc CatalogDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		catalog := mapCatalogDocument(doc)
		if err := catalog.Validate(); err != nil {
			return nil, fmt.Errorf("mongo: invalid catalog document: %w", err)
		}
		catalogs = append(catalogs, catalog)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return catalogs, nil
}

// FindByKey はキーに一致するカタログを検証して返す。存在しない場合は ErrCatalogNotFound を返す。
func (r *CatalogRepository) FindByKey(ctx context.Context, key string) (*domain.Catalog, error) {
	var doc CatalogDocument
	err := r.catalogs.FindOne(ctx, bson.M{"_id": strings.TrimSpace(key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %q", domain.ErrCatalogNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	catalog := mapCatalogDocument(doc)
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("mongo: invalid catalog document: %w", err)
	}
	return &catalog, nil
}

// Upsert はカタログを検証したうえでキー単位に置き換える。seed コマンドから利用する。
func (r *CatalogRepository) Upsert(ctx context.Context, catalog domain.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}
	doc := newCatalogDocument(catalog, time.Now().UTC())
	opts := options.Replace().SetUpsert(true)
	_, err := r.catalogs.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts)
	return err
}

// Drop は catalogs コレクションを削除する。
func (r *CatalogRepository) Drop(ctx context.Context) error {
	return r.catalogs.Drop(ctx)
}
