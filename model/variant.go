package model

// DisabledVariantName is the name of the variant returned when no variant applies.
const DisabledVariantName = "disabled"

// StickinessDefault selects the user id, then the session id, then a random value.
const StickinessDefault = "default"

// Payload is the optional data carried by a variant.
type Payload struct {
	Type  string
	Value string
}

// Override forces a variant for contexts whose field has one of the listed values.
type Override struct {
	ContextName string
	Values      []string
}

// VariantDefinition is one weighted variant of a feature, as delivered by the server.
type VariantDefinition struct {
	Name       string
	Weight     int
	Stickiness string
	Payload    *Payload
	Overrides  []Override
}

// Variant is the result of variant selection.
type Variant struct {
	Name    string
	Payload *Payload
	Enabled bool
}

// DisabledVariant is the sentinel returned when a feature is disabled, unknown, or has no variants,
// and the caller did not supply a default.
var DisabledVariant = Variant{Name: DisabledVariantName} //nolint:gochecknoglobals

// NewVariant creates an enabled variant with a string payload.
func NewVariant(name, payloadValue string) Variant {
	return Variant{
		Name:    name,
		Payload: &Payload{Type: "string", Value: payloadValue},
		Enabled: true,
	}
}

// ToVariant converts a definition into the value handed to callers. The payload is copied.
func (d VariantDefinition) ToVariant() Variant {
	v := Variant{Name: d.Name, Enabled: true}
	if d.Payload != nil {
		p := *d.Payload
		v.Payload = &p
	}
	return v
}
