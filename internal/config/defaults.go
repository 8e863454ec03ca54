package config

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 7860
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultOrdersCSV  = "./data/orders.csv"
	DefaultPolicyPath = "./data/policy.json"
	DefaultFAQPath    = "./data/faq.json"

	DefaultElasticsearchHost       = "localhost"
	DefaultElasticsearchPort       = 9200
	DefaultElasticsearchScheme     = "http"
	DefaultElasticsearchMaxRetries = 3
	DefaultElasticsearchTimeout    = 30

	DefaultIndexPrefix = "ecomarket"

	DefaultAgentTimeout = 120 // seconds
)

var DefaultCORSOrigins = []string{
	"http://localhost:7860",
	"http://127.0.0.1:7860",
}
