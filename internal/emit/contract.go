package emit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// documentContractSchema constrains the logical shape a Document must
// have before serialization: a non-empty title and, for every page, a
// structure whose paragraphs carry a recognized role. This is the
// "logical document" contract from the export interface, validated
// independently of the concrete Office Open XML target.
const documentContractSchema = `{
  "type": "object",
  "required": ["title", "pages"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["paragraphs"],
        "properties": {
          "paragraphs": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["role"],
              "properties": {
                "role": {"enum": ["header", "footer", "body", "sectionHeading"]}
              }
            }
          }
        }
      }
    }
  }
}`

var documentContract *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", bytes.NewReader([]byte(documentContractSchema))); err != nil {
		panic(fmt.Sprintf("emit: invalid embedded document contract schema: %v", err))
	}
	schema, err := compiler.Compile("document.json")
	if err != nil {
		panic(fmt.Sprintf("emit: failed to compile embedded document contract schema: %v", err))
	}
	documentContract = schema
}

// contractView is the JSON projection of a Document checked against
// documentContractSchema; it deliberately omits box text/geometry,
// which the schema has no opinion on.
type contractView struct {
	Title string              `json:"title"`
	Pages []contractPageView  `json:"pages"`
}

type contractPageView struct {
	Paragraphs []contractParagraphView `json:"paragraphs"`
}

type contractParagraphView struct {
	Role string `json:"role"`
}

// ValidateContract checks that doc satisfies the structural contract
// every serializer target (plain text, selection, Office Open XML)
// must honor. Returns a descriptive error on the first violation.
func ValidateContract(doc Document) error {
	view := contractView{Title: doc.Title}
	for _, pg := range doc.Pages {
		var pv contractPageView
		for _, p := range pg.Structure.Paragraphs {
			pv.Paragraphs = append(pv.Paragraphs, contractParagraphView{Role: string(roleOrBody(p.Role))})
		}
		view.Pages = append(view.Pages, pv)
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal document for contract validation: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode document for contract validation: %w", err)
	}
	if err := documentContract.Validate(decoded); err != nil {
		return fmt.Errorf("document does not satisfy export contract: %w", err)
	}
	return nil
}

func roleOrBody(r wordbox.Role) wordbox.Role {
	if r == "" {
		return wordbox.RoleBody
	}
	return r
}
