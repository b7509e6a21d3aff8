package file

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"adaptive-quiz-service/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed pool.schema.json
var poolSchemaJSON []byte

//go:embed sample/*.json
var samplePools embed.FS

const poolSchemaURL = "schema://question-pool.json"

var (
	schemaOnce sync.Once
	poolSchema *jsonschema.Schema
	schemaErr  error
)

// PoolLoader reads <difficulty>.json question pools from a filesystem.
type PoolLoader struct {
	fsys fs.FS
}

// NewPoolLoader reads pools from fsys.
func NewPoolLoader(fsys fs.FS) *PoolLoader {
	return &PoolLoader{fsys: fsys}
}

// NewDirPoolLoader reads pools from dir on disk; an empty dir selects the
// embedded sample set.
func NewDirPoolLoader(dir string) *PoolLoader {
	if dir == "" {
		return SamplePoolLoader()
	}
	return NewPoolLoader(os.DirFS(dir))
}

// SamplePoolLoader serves the pools compiled into the binary.
func SamplePoolLoader() *PoolLoader {
	sub, err := fs.Sub(samplePools, "sample")
	if err != nil {
		panic(err)
	}
	return NewPoolLoader(sub)
}

func (l *PoolLoader) LoadPool(_ context.Context, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	name := string(difficulty) + ".json"
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrPoolUnavailable)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return DecodePool(raw, difficulty)
}

// DecodePool validates raw against the pool schema and decodes it. Records
// without a difficulty inherit the pool's.
func DecodePool(raw []byte, difficulty domain.Difficulty) ([]domain.QuestionRecord, error) {
	if err := validatePool(raw); err != nil {
		return nil, fmt.Errorf("%s pool: %w", difficulty, err)
	}

	var pool []domain.QuestionRecord
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, fmt.Errorf("decode %s pool: %w", difficulty, err)
	}
	for i := range pool {
		pool[i].Difficulty = domain.Difficulty(strings.ToLower(string(pool[i].Difficulty)))
		if pool[i].Difficulty == "" {
			pool[i].Difficulty = difficulty
		}
	}
	return pool, nil
}

func validatePool(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(poolSchemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse pool schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(poolSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		poolSchema, schemaErr = c.Compile(poolSchemaURL)
	})
	return poolSchema, schemaErr
}
