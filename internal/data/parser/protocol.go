package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProtocol = errors.New("invalid protocol")

var validate = validator.New()

// protocolItem is a category or an observable as stored in protocol files
type protocolItem struct {
	Type        string         `json:"type" yaml:"type" validate:"required,oneof=category observable"`
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Name        string         `json:"name" yaml:"name" validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Action      string         `json:"action,omitempty" yaml:"action,omitempty" validate:"omitempty,oneof=continuous discrete"`
	Children    []protocolItem `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

type protocolFile struct {
	ID          int64          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Items       []protocolItem `json:"items" yaml:"items" validate:"dive"`
}

// ParseProtocolFile loads a protocol from JSON or YAML. The file holds either
// an object with an items list or the bare items list.
func ParseProtocolFile(path string) (model.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Protocol{}, fmt.Errorf("failed to read protocol file: %w", err)
	}

	var unmarshal func([]byte, interface{}) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = sonic.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return model.Protocol{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	var file protocolFile
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	bareList := len(trimmed) > 0 && (trimmed[0] == '[' ||
		(trimmed[0] == '-' && !bytes.HasPrefix(trimmed, []byte("---"))))
	if bareList {
		err = unmarshal(data, &file.Items)
	} else {
		err = unmarshal(data, &file)
	}
	if err != nil {
		return model.Protocol{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	protocol, err := buildProtocol(file)
	if err != nil {
		return model.Protocol{}, fmt.Errorf("%s: %w", path, err)
	}

	util.LogDebugf("Parsed protocol %q with %d categories from %s", protocol.Name, len(protocol.Categories), path)
	return protocol, nil
}

func buildProtocol(file protocolFile) (model.Protocol, error) {
	if err := validate.Struct(file); err != nil {
		return model.Protocol{}, fmt.Errorf("%w: %v", ErrInvalidProtocol, err)
	}
	if err := checkUniqueIDs(file.Items); err != nil {
		return model.Protocol{}, err
	}

	protocol := model.Protocol{ID: file.ID, Name: file.Name}
	for _, item := range file.Items {
		if item.Type != model.ItemCategory {
			util.LogWarnf("Ignoring top-level %s %q: only categories are allowed at the root", item.Type, item.Name)
			continue
		}
		categories, err := flattenCategory(item)
		if err != nil {
			return model.Protocol{}, err
		}
		protocol.Categories = append(protocol.Categories, categories...)
	}
	return protocol, nil
}

// flattenCategory returns the category followed by its nested categories in
// depth-first order
func flattenCategory(item protocolItem) ([]model.Category, error) {
	category := model.Category{ID: item.ID, Name: item.Name, Action: item.Action}
	var nested []model.Category
	seen := make(map[string]bool)

	for _, child := range item.Children {
		if child.Type == model.ItemCategory {
			sub, err := flattenCategory(child)
			if err != nil {
				return nil, err
			}
			nested = append(nested, sub...)
			continue
		}
		if seen[child.Name] {
			return nil, fmt.Errorf("%w: duplicate observable %q in category %q", ErrInvalidProtocol, child.Name, item.Name)
		}
		seen[child.Name] = true
		category.Observables = append(category.Observables, model.Observable{ID: child.ID, Name: child.Name})
	}

	return append([]model.Category{category}, nested...), nil
}

func checkUniqueIDs(items []protocolItem) error {
	seen := make(map[string]bool)
	var walk func([]protocolItem) error
	walk = func(items []protocolItem) error {
		for _, item := range items {
			if seen[item.ID] {
				return fmt.Errorf("%w: duplicate item id %q", ErrInvalidProtocol, item.ID)
			}
			seen[item.ID] = true
			if err := walk(item.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(items)
}
