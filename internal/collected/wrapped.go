package collected

import "encoding/json"

// unwrapData strips an optional {"data": <payload>} envelope, returning the
// inner payload bytes unchanged if the envelope isn't present.
func unwrapData(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && len(probe.Data) > 0 {
		return probe.Data
	}
	return raw
}

// UnmarshalJSON decodes Sections tolerantly: every collector key may be
// present in either its raw shape or wrapped in {"data": ...}, and any key
// may be entirely absent (left as its zero value).
func (s *Sections) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	decodeInto := func(key string, dst interface{}) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		return json.Unmarshal(unwrapData(v), dst)
	}

	if err := decodeInto("hierarchy", &s.Hierarchy); err != nil {
		return err
	}
	if err := decodeInto("iam", &s.IAM); err != nil {
		return err
	}
	if err := decodeInto("identity", &s.Identity); err != nil {
		return err
	}
	if err := decodeInto("resources", &s.Resources); err != nil {
		return err
	}
	if err := decodeInto("logs", &s.Logs); err != nil {
		return err
	}
	if err := decodeInto("tags", &s.Tags); err != nil {
		return err
	}
	if err := decodeInto("gke", &s.GKE); err != nil {
		return err
	}
	if v, ok := raw["cloudbuild"]; ok {
		s.CloudBuild = unwrapData(v)
	}

	normalizeBindingResources(s)
	return nil
}

// normalizeBindingResources fills in Binding.Resource from the enclosing
// map key when a document nests bindings as {resourceID: [bindings...]}
// without repeating the resource id inside each binding.
func normalizeBindingResources(s *Sections) {
	fill := func(m map[string][]Binding) {
		for resourceID, bindings := range m {
			for i := range bindings {
				if bindings[i].Resource == "" {
					bindings[i].Resource = resourceID
				}
			}
		}
	}
	fill(s.IAM.Policies.Organizations)
	fill(s.IAM.Policies.Folders)
	fill(s.IAM.Policies.Projects)
	fill(s.Resources.ResourceIAMPolicies)
}
