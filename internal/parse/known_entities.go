package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// knownEntitiesSchema validates the known-entities config file shape before
// it is trusted for vendor matching.
const knownEntitiesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "vendors": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "code": {"type": "string"}
        },
        "required": ["name"]
      }
    }
  }
}`

var compiledKnownEntitiesSchema = jsonschema.MustCompileString("known_entities.json", knownEntitiesSchema)

// KnownEntities is the read-only vendor table consumed by fusion step 1.
// IDs holds the vendor identifiers in deterministic (lexicographic) match
// order; map iteration order would make the first-substring-wins tie-break
// nondeterministic.
type KnownEntities struct {
	Vendors map[string]entity.Vendor
	IDs     []string
}

type knownEntitiesFile struct {
	Vendors map[string]struct {
		Name       string         `json:"name"`
		Confidence *float64       `json:"confidence"`
		Code       string         `json:"code"`
		Metadata   map[string]any `json:"metadata"`
	} `json:"vendors"`
}

// LoadKnownEntities reads and validates the vendor table. A missing file is
// a valid empty table; a malformed file is an error.
func LoadKnownEntities(path string, logger *slog.Logger) (*KnownEntities, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("known entities file missing", "path", path)
			return &KnownEntities{Vendors: map[string]entity.Vendor{}}, nil
		}
		return nil, fmt.Errorf("read known entities: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse known entities: %w", err)
	}
	if err := compiledKnownEntitiesSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate known entities: %w", err)
	}

	var file knownEntitiesFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse known entities: %w", err)
	}

	ke := &KnownEntities{Vendors: make(map[string]entity.Vendor, len(file.Vendors))}
	for id, v := range file.Vendors {
		confidence := 0.9
		if v.Confidence != nil {
			confidence = *v.Confidence
		}
		ke.Vendors[id] = entity.Vendor{
			Name:       v.Name,
			Confidence: confidence,
			Code:       v.Code,
			Metadata:   v.Metadata,
		}
		ke.IDs = append(ke.IDs, id)
	}
	sort.Strings(ke.IDs)
	logger.Debug("loaded known entities", "path", path, "vendors", len(ke.IDs))
	return ke, nil
}

// CodeForVendor returns the registered code for a vendor display name, or
// "" when the vendor is unknown or carries no code.
func (k *KnownEntities) CodeForVendor(name string) string {
	for _, id := range k.IDs {
		if strings.EqualFold(k.Vendors[id].Name, name) {
			return k.Vendors[id].Code
		}
	}
	return ""
}
