package schema

import "fmt"

// ValidateColumns проверяет корректность набора колонок
func ValidateColumns(cols []ColumnDef) error {
	if len(cols) == 0 {
		return fmt.Errorf("schema must have at least one column")
	}

	names := make(map[string]bool, len(cols))
	for i, col := range cols {
		if col.Name == "" {
			return fmt.Errorf("column at index %d has empty name", i)
		}
		if names[col.Name] {
			return fmt.Errorf("duplicate column name: %s", col.Name)
		}
		names[col.Name] = true

		if !IsValidType(col.Type) {
			return fmt.Errorf("invalid type '%s' for column '%s'", col.Type, col.Name)
		}
	}
	return nil
}
