// File: /models/types.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSet is a custom type for handling JSON arrays of IDs in the database.
// Membership is treated as set semantics: Add never duplicates.
type StringSet []string

// Value implements driver.Valuer interface for database storage
func (ss StringSet) Value() (driver.Value, error) {
	if ss == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(ss)
}

// Scan implements sql.Scanner interface for database retrieval
func (ss *StringSet) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return fmt.Errorf("cannot scan %T into StringSet", value)
	}
}

// GormDataType returns the data type for GORM
func (StringSet) GormDataType() string {
	return "json"
}

// MarshalJSON implements json.Marshaler interface
func (ss StringSet) MarshalJSON() ([]byte, error) {
	if ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ss))
}

// UnmarshalJSON implements json.Unmarshaler interface
func (ss *StringSet) UnmarshalJSON(data []byte) error {
	var slice []string
	if err := json.Unmarshal(data, &slice); err != nil {
		return err
	}
	*ss = StringSet(slice)
	return nil
}

// Contains reports whether id is a member of the set.
func (ss StringSet) Contains(id string) bool {
	for _, member := range ss {
		if member == id {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every given id is a member of the set.
func (ss StringSet) ContainsAll(ids ...string) bool {
	for _, id := range ids {
		if !ss.Contains(id) {
			return false
		}
	}
	return true
}

// Add appends id if it is not already a member and reports whether
// the set changed.
func (ss *StringSet) Add(id string) bool {
	if ss.Contains(id) {
		return false
	}
	*ss = append(*ss, id)
	return true
}

// Remove deletes id from the set and reports whether it was present.
func (ss *StringSet) Remove(id string) bool {
	for i, member := range *ss {
		if member == id {
			*ss = append((*ss)[:i], (*ss)[i+1:]...)
			return true
		}
	}
	return false
}
