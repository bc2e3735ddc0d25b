package models

import "encoding/json"

// OptionalString is a nullable text field of a partial update: omitted
// (Set=false), null (Set=true, Value=nil) or a value.
type OptionalString struct {
	Set   bool
	Value *string
}

func StringOf(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

func ClearedString() OptionalString {
	return OptionalString{Set: true}
}

// OptionalDescription clears on an empty string; forms use it so a blank
// box stores the same "no description" as a create without one.
func OptionalDescription(s string) OptionalString {
	if s == "" {
		return ClearedString()
	}
	return StringOf(s)
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return NewValidationError("description", "must be a string")
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func (o OptionalString) IsZero() bool {
	return !o.Set
}
