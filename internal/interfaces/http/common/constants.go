package common

const (
	// MaxFormBody limits urlencoded submission bodies.
	MaxFormBody = 64 << 10
	// QuestionFieldPrefix prefixes the form key of every answer, followed by the question index.
	QuestionFieldPrefix = "question_"
	// CatalogField selects the catalog in query strings and form bodies.
	CatalogField = "catalog"
)
