package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors"

	"github.com/reltab/reltab/internal/errors"
	"github.com/reltab/reltab/internal/models"
)

// Parse converts JSON data from an io.Reader into a document Collection.
//
// The decoder walks the token stream instead of unmarshalling into
// map[string]interface{} so that object member order is preserved; column
// and table ordering downstream is defined by first-seen field order.
func Parse(reader io.Reader) (models.Collection, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // keep numeric literals exactly as written

	root, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Collection{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return models.Collection{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		return models.Collection{}, errors.NewParsingError("failed to decode JSON", err)
	}

	// Check for trailing data after the first JSON value. Trailing
	// whitespace is tolerated; a second value is not.
	if decoder.More() {
		if _, err := decodeValue(decoder); err == nil {
			return models.Collection{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		} else if !stderrors.Is(err, io.EOF) {
			return models.Collection{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
		}
	}

	return collect(root)
}

// decodeValue reads one complete JSON value from the decoder.
func decodeValue(decoder *json.Decoder) (*models.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(decoder, tok)
}

func valueFromToken(decoder *json.Decoder, tok json.Token) (*models.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t.String())
	case bool:
		return &models.Value{Kind: models.Bool, Bool: t}, nil
	case json.Number:
		return &models.Value{Kind: models.Number, Num: t}, nil
	case string:
		return &models.Value{Kind: models.String, Str: t}, nil
	case nil:
		return &models.Value{Kind: models.Null}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token type: %T", tok)
	}
}

func decodeObject(decoder *json.Decoder) (*models.Value, error) {
	obj := &models.Value{Kind: models.Object}
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token: %v", keyTok)
		}
		val, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, models.Member{Key: key, Value: val})
	}
	// Consume the closing '}'.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (*models.Value, error) {
	arr := &models.Value{Kind: models.Array}
	for decoder.More() {
		elem, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, elem)
	}
	// Consume the closing ']'.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// collect validates the top-level shape: a single object becomes a
// one-document collection, an array must contain only objects.
func collect(root *models.Value) (models.Collection, error) {
	switch root.Kind {
	case models.Object:
		return models.Collection{Docs: []*models.Value{root}}, nil
	case models.Array:
		for i, elem := range root.Elems {
			if elem.Kind != models.Object {
				return models.Collection{}, errors.NewShapeError(
					fmt.Sprintf("document %d is not an object", i),
					errors.ErrBadShape,
				)
			}
		}
		return models.Collection{Docs: root.Elems, RootWasArray: true}, nil
	default:
		return models.Collection{}, errors.NewShapeError("top-level value is not an object or array", errors.ErrBadShape)
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Collection, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Collection{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	reader := strings.NewReader(jsonString)
	return Parse(reader)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Collection, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Collection{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Collection{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Collection{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Collection{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Collection{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
