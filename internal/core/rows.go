package core

import "database/sql"

// scanRowMaps scans all remaining rows into NullStringMap values.
func scanRowMaps(rows *sql.Rows) ([]NullStringMap, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []NullStringMap
	for rows.Next() {
		m, err := scanInto(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// scanRowMap scans the first row, or returns ErrNoRows.
func scanRowMap(rows *sql.Rows) (NullStringMap, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	return scanInto(rows, cols)
}

func scanInto(rows *sql.Rows, cols []string) (NullStringMap, error) {
	values := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	m := make(NullStringMap, len(cols))
	for i, col := range cols {
		m[col] = values[i]
	}
	return m, nil
}

// scanScalar returns the first column of the first row, or ErrNoRows.
// []byte values are converted to string for convenience.
func scanScalar(rows *sql.Rows) (any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	if b, ok := values[0].([]byte); ok {
		return string(b), nil
	}
	return values[0], nil
}
