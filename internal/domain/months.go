package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Months is the set of repayment periods a policy permits, stored as a JSON
// array column.
type Months []int

func (m Months) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Months) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Months", src)
	}
}
