// Package utils holds small shared helpers for parsing model output and
// lenient configuration files.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the JSON defects language models habitually produce:
// single quotes, unquoted keys, trailing commas, unclosed brackets, stray
// markdown fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSONToStruct parses human-friendly JSON (comments, unquoted keys,
// optional commas) directly into a struct. Used for hand-written assumption
// override files.
func ParseHJSONToStruct(hjsonData string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(hjsonData), schema); err != nil {
		return fmt.Errorf("HJSON_UNMARSHAL_ERROR: %v", err)
	}
	return nil
}

// SmartParse tries multiple strategies to land model output into a struct:
// strict JSON first, repaired JSON second, Hjson last. Returns the text that
// finally parsed.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if err := ParseHJSONToStruct(input, schema); err == nil {
		return input, nil
	}

	return "", fmt.Errorf("JSON_PARSE_FAILED: input is not JSON, repairable JSON or Hjson")
}
