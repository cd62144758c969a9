package compare

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/liamcoop/bpmnconstraints/store"
)

// Load reads a descriptor list from path. The file may hold a JSON array
// of strings, a model export with a "declare_model" list, or one
// descriptor per line (blank lines and lines starting with # skipped).
func Load(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	list, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return list, nil
}

func decode(raw []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return nil, nil
	case trimmed[0] == '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	case trimmed[0] == '{':
		e, err := store.ReadJSON(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return e.DeclareModel, nil
	}

	var list []string
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	return list, sc.Err()
}
