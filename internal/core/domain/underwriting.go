package domain

// FieldKind classifies an underwriting field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldChoice FieldKind = "choice"
	FieldFile   FieldKind = "file"
)

// File constraints used across the schemas: PDF reports up to 10MB,
// image captures up to 10MB.
const MaxUploadSizeBytes = 10 << 20

var (
	pdfTypes   = []string{"application/pdf"}
	imageTypes = []string{"image/jpeg", "image/png"}
)

// FieldDescriptor describes one underwriting field a requester must supply
// for a given coverage type. For file fields the submitted value is the ID
// of a previously uploaded document; its content type and size must satisfy
// AcceptedTypes / MaxSizeBytes.
type FieldDescriptor struct {
	Key           string    `json:"key"`
	Label         string    `json:"label"`
	Kind          FieldKind `json:"kind"`
	Required      bool      `json:"required"`
	Options       []string  `json:"options,omitempty"`
	AcceptedTypes []string  `json:"accepted_types,omitempty"`
	MaxSizeBytes  int64     `json:"max_size_bytes,omitempty"`
}

// underwritingSchemas is the closed per-type field table. Adding a coverage
// type requires an explicit new entry here; there is no mutable registry.
var underwritingSchemas = map[CoverageType][]FieldDescriptor{
	CoverageProperty: {
		{Key: "property_type", Label: "Property type", Kind: FieldChoice, Required: true,
			Options: []string{"house", "apartment", "commercial"}},
		{Key: "property_address", Label: "Property address", Kind: FieldText, Required: true},
		{Key: "title_deed", Label: "Title deed", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
	CoverageVehicle: {
		{Key: "vehicle_type", Label: "Vehicle type", Kind: FieldChoice, Required: true,
			Options: []string{"car", "motorcycle", "truck"}},
		{Key: "accident_history", Label: "Accident history report", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
	CoverageTravel: {
		{Key: "destination", Label: "Destination", Kind: FieldText, Required: true},
		{Key: "duration_days", Label: "Trip duration (days)", Kind: FieldText, Required: true},
		{Key: "purpose", Label: "Purpose of travel", Kind: FieldChoice, Required: true,
			Options: []string{"tourism", "business", "study"}},
		{Key: "health_report", Label: "Health report", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
	CoverageHealth: {
		{Key: "medical_history", Label: "Medical history", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
		{Key: "family_history", Label: "Family medical history", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
	CoverageLife: {
		{Key: "identity_front", Label: "Identity card (front)", Kind: FieldFile, Required: true,
			AcceptedTypes: imageTypes, MaxSizeBytes: MaxUploadSizeBytes},
		{Key: "identity_back", Label: "Identity card (back)", Kind: FieldFile, Required: true,
			AcceptedTypes: imageTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
	CoverageLiability: {
		{Key: "business_name", Label: "Business name", Kind: FieldText, Required: true},
		{Key: "revenue_report", Label: "Revenue report", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
		{Key: "risk_report", Label: "Risk assessment report", Kind: FieldFile, Required: true,
			AcceptedTypes: pdfTypes, MaxSizeBytes: MaxUploadSizeBytes},
	},
}

// FieldsFor returns the ordered underwriting field set for a coverage type.
func FieldsFor(t CoverageType) ([]FieldDescriptor, error) {
	fields, ok := underwritingSchemas[t]
	if !ok {
		return nil, NewValidationError("coverage_type", "unknown coverage type: "+string(t))
	}
	return fields, nil
}

// ValidateSubmission checks a submitted underwriting blob against the schema
// of the coverage type: every required field present and non-empty, choice
// values inside their option set, no keys outside the schema. File fields are
// validated for presence here; the referenced documents are cross-checked
// against AcceptedTypes/MaxSizeBytes by the offer service, which can load
// their metadata.
func ValidateSubmission(t CoverageType, data map[string]string) error {
	fields, err := FieldsFor(t)
	if err != nil {
		return err
	}

	known := make(map[string]FieldDescriptor, len(fields))
	for _, f := range fields {
		known[f.Key] = f
	}

	for key := range data {
		if _, ok := known[key]; !ok {
			return NewValidationError(key, "not part of the underwriting schema")
		}
	}

	for _, f := range fields {
		value, present := data[f.Key]
		if !present || value == "" {
			if f.Required {
				return NewValidationError(f.Key, "required field is missing")
			}
			continue
		}
		if f.Kind == FieldChoice && !containsOption(f.Options, value) {
			return NewValidationError(f.Key, "value is not an allowed option")
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
