package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/news-spool/internal/apperr"
	"github.com/DjordjeVuckovic/news-spool/internal/credentials"
	"github.com/DjordjeVuckovic/news-spool/internal/domain/document"
	"github.com/DjordjeVuckovic/news-spool/internal/storage"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/es"
	"github.com/DjordjeVuckovic/news-spool/internal/storage/pg"
	"github.com/DjordjeVuckovic/news-spool/pkg/stringsutil"
)

const defaultAPIKeyPath = "~/Desktop/ES_API_KEY.json"

type StorageConfig struct {
	storage.Type
	IndexPrefix string
	Es          *es.ClientConfig
	// Pg is set only when the run ledger is enabled.
	Pg *pg.PoolConfig
}

func LoadEnv() (*StorageConfig, error) {
	storageType := storage.Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		storageType = storage.ES
	}
	if storageType != storage.ES && storageType != storage.InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, apperr.NewConfig("STORAGE_TYPE", fmt.Errorf(
			"invalid value %q, expected one of %v",
			storageType,
			[]storage.Type{storage.ES, storage.InMem}))
	}

	prefix := os.Getenv("ES_INDEX_PREFIX")
	if prefix == "" {
		prefix = document.DefaultPartitionPrefix
	}

	var esCfg *es.ClientConfig
	if storageType == storage.ES {
		cfg, err := loadESConfig(prefix)
		if err != nil {
			return nil, err
		}
		esCfg = cfg
	}

	var pgCfg *pg.PoolConfig
	if connStr := os.Getenv("PG_CONNECTION_STRING"); connStr != "" {
		pgCfg = &pg.PoolConfig{ConnStr: connStr}
	}

	return &StorageConfig{
		Type:        storageType,
		IndexPrefix: prefix,
		Es:          esCfg,
		Pg:          pgCfg,
	}, nil
}

func loadESConfig(prefix string) (*es.ClientConfig, error) {
	addresses := stringsutil.SplitTrimmed(os.Getenv("ES_ADDRESSES"), ",")
	if len(addresses) == 0 {
		slog.Error("Elasticsearch configuration is incomplete", "addresses", addresses)
		return nil, apperr.NewConfig("ES_ADDRESSES", fmt.Errorf("at least one address is required"))
	}

	keyPath := os.Getenv("ES_API_KEY_PATH")
	if keyPath == "" {
		keyPath = defaultAPIKeyPath
	}
	apiKey, err := credentials.LoadAPIKey(keyPath)
	if err != nil {
		return nil, err
	}

	insecure := true
	if v := os.Getenv("ES_INSECURE_SKIP_VERIFY"); v != "" {
		insecure, err = strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.NewConfig("ES_INSECURE_SKIP_VERIFY", err)
		}
	}

	dims := es.DefaultEmbeddingDims
	if v := os.Getenv("EMBEDDING_DIMS"); v != "" {
		dims, err = strconv.Atoi(v)
		if err != nil || dims <= 0 {
			return nil, apperr.NewConfig("EMBEDDING_DIMS", fmt.Errorf("must be a positive integer, got %q", v))
		}
	}

	return &es.ClientConfig{
		Addresses:          addresses,
		APIKey:             apiKey,
		Username:           os.Getenv("ES_USERNAME"),
		Password:           os.Getenv("ES_PASSWORD"),
		InsecureSkipVerify: insecure,
		IndexPrefix:        prefix,
		EmbeddingDims:      dims,
	}, nil
}
