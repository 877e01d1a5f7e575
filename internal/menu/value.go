package menu

import "encoding/json"

// Value is an attribute read verbatim from the menu markup. The zero Value is absent, which
// is deliberately distinct from a present "0": a zero would be a false nutritional claim.
type Value struct {
	text    string
	present bool
}

// Present wraps a value that exists in the markup, even if it is empty or "N/A".
func Present(text string) Value {
	return Value{text: text, present: true}
}

// Get returns the raw text and whether the attribute existed.
func (v Value) Get() (string, bool) {
	return v.text, v.present
}

// Or returns the raw text, or fallback if the value is absent.
func (v Value) Or(fallback string) string {
	if !v.present {
		return fallback
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = Present(text)
	return nil
}
