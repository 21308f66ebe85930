package regfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/zalando/storefront/pattern"
	"github.com/zalando/storefront/routing"
)

var (
	ErrMissingPattern = errors.New("missing pattern")
	ErrMissingContent = errors.New("missing content")
)

// DefinitionError is returned when an entry of the document is invalid.
type DefinitionError struct {
	Index    int
	Id       string
	Original error
}

func (err *DefinitionError) Error() string {
	if err.Id == "" {
		return fmt.Sprintf("registration [%d]: %v", err.Index, err.Original)
	}

	return fmt.Sprintf("registration %s [%d]: %v", err.Id, err.Index, err.Original)
}

func (err *DefinitionError) Unwrap() error { return err.Original }

type document struct {
	Registrations []entry `yaml:"registrations"`
}

type entry struct {
	Id      string  `yaml:"id"`
	Pattern *string `yaml:"pattern"`
	Kind    string  `yaml:"kind"`
	Content string  `yaml:"content"`
}

// Client provides the registrations parsed from a document once.
type Client struct {
	name          string
	registrations []*routing.Registration
}

func (e entry) registration() (*routing.Registration, error) {
	if e.Pattern == nil {
		return nil, ErrMissingPattern
	}

	if e.Content == "" {
		return nil, ErrMissingContent
	}

	var (
		kind pattern.Kind
		err  error
	)

	switch {
	case e.Kind != "":
		kind, err = pattern.ParseKind(e.Kind)
		if err != nil {
			return nil, err
		}
	case strings.Contains(*e.Pattern, pattern.Token):
		kind = pattern.Wildcard
	default:
		kind = pattern.Literal
	}

	return &routing.Registration{
		Id:        e.Id,
		Pattern:   *e.Pattern,
		Kind:      kind,
		ContentId: e.Content,
	}, nil
}

// Parse parses the registrations from a YAML document.
func Parse(data []byte) ([]*routing.Registration, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registrations: %w", err)
	}

	registrations := make([]*routing.Registration, 0, len(doc.Registrations))
	for i, e := range doc.Registrations {
		r, err := e.registration()
		if err != nil {
			return nil, &DefinitionError{Index: i, Id: e.Id, Original: err}
		}

		registrations = append(registrations, r)
	}

	return registrations, nil
}

// Open reads and parses a registration file.
func Open(path string) (*Client, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	registrations, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Client{name: "file:" + path, registrations: registrations}, nil
}

// Inline parses the registrations from a string.
func Inline(doc string) (*Client, error) {
	registrations, err := Parse([]byte(doc))
	if err != nil {
		return nil, err
	}

	return &Client{name: "inline", registrations: registrations}, nil
}

// LoadAll returns the parsed registrations.
func (c *Client) LoadAll() ([]*routing.Registration, error) {
	return c.registrations, nil
}

func (c *Client) String() string { return c.name }
