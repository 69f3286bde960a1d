package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/nikhilsahni7/FeedbackX/builder"
	"github.com/nikhilsahni7/FeedbackX/models"
	"gopkg.in/yaml.v3"
)

// loadDefinition reads a YAML form definition and runs it through the
// builder so it is rejected locally with the same messages the store uses.
func loadDefinition(path string) (*builder.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def models.FormDefinition
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := builder.FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := d.ValidateForSubmit(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// definitionYAML renders a stored form in the format loadDefinition reads.
func definitionYAML(f models.Form) ([]byte, error) {
	def := models.FormDefinition{
		Title:       f.Title,
		Description: f.Description,
		IsPublic:    f.IsPublic,
		Closed:      f.Closed,
		Questions:   make([]models.QuestionDefinition, 0, len(f.Questions)),
	}
	for _, q := range f.Questions {
		qd := models.QuestionDefinition{
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			IsRequired:   q.IsRequired,
			OrderIndex:   q.OrderIndex,
		}
		for _, o := range q.Options {
			qd.Options = append(qd.Options, models.OptionDefinition{OptionText: o.OptionText, OrderIndex: o.OrderIndex})
		}
		def.Questions = append(def.Questions, qd)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// definitionSchema is the JSON Schema of a form definition file.
func definitionSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true, FieldNameTag: "yaml"}
	s := r.Reflect(&models.FormDefinition{})
	s.Title = "FeedbackX form definition"
	return json.MarshalIndent(s, "", "  ")
}
