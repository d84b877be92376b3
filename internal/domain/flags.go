package domain

// Flags are the per-session visibility switches controlled by the host.
type Flags struct {
	ShowResults    bool `json:"showResults"`
	ShowDriver     bool `json:"showDriver"`
	ShowExpressive bool `json:"showExpressive"`
	ShowAnalyser   bool `json:"showAnalyser"`
	ShowAmiable    bool `json:"showAmiable"`
}

// Visible reports the flag that controls a style's result view.
func (f Flags) Visible(style Style) bool {
	switch style {
	case StyleDriver:
		return f.ShowDriver
	case StyleExpressive:
		return f.ShowExpressive
	case StyleAnalyser:
		return f.ShowAnalyser
	case StyleAmiable:
		return f.ShowAmiable
	}
	return false
}

// Apply returns f with every present field of patch written over it.
func (f Flags) Apply(patch FlagPatch) Flags {
	if patch.ShowResults != nil {
		f.ShowResults = *patch.ShowResults
	}
	if patch.ShowDriver != nil {
		f.ShowDriver = *patch.ShowDriver
	}
	if patch.ShowExpressive != nil {
		f.ShowExpressive = *patch.ShowExpressive
	}
	if patch.ShowAnalyser != nil {
		f.ShowAnalyser = *patch.ShowAnalyser
	}
	if patch.ShowAmiable != nil {
		f.ShowAmiable = *patch.ShowAmiable
	}
	return f
}

// Patch converts f into a FlagPatch with every field present.
func (f Flags) Patch() FlagPatch {
	return FlagPatch{
		ShowResults:    boolPtr(f.ShowResults),
		ShowDriver:     boolPtr(f.ShowDriver),
		ShowExpressive: boolPtr(f.ShowExpressive),
		ShowAnalyser:   boolPtr(f.ShowAnalyser),
		ShowAmiable:    boolPtr(f.ShowAmiable),
	}
}

// FlagPatch is a partial flag update; nil fields are absent and leave the current value alone.
type FlagPatch struct {
	ShowResults    *bool `json:"showResults,omitempty"`
	ShowDriver     *bool `json:"showDriver,omitempty"`
	ShowExpressive *bool `json:"showExpressive,omitempty"`
	ShowAnalyser   *bool `json:"showAnalyser,omitempty"`
	ShowAmiable    *bool `json:"showAmiable,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p FlagPatch) IsEmpty() bool {
	return p.ShowResults == nil && p.ShowDriver == nil && p.ShowExpressive == nil &&
		p.ShowAnalyser == nil && p.ShowAmiable == nil
}

// Fields returns the present fields keyed by their document field name.
func (p FlagPatch) Fields() map[string]bool {
	fields := make(map[string]bool, 5)
	if p.ShowResults != nil {
		fields[FieldShowResults] = *p.ShowResults
	}
	if p.ShowDriver != nil {
		fields[FieldShowDriver] = *p.ShowDriver
	}
	if p.ShowExpressive != nil {
		fields[FieldShowExpressive] = *p.ShowExpressive
	}
	if p.ShowAnalyser != nil {
		fields[FieldShowAnalyser] = *p.ShowAnalyser
	}
	if p.ShowAmiable != nil {
		fields[FieldShowAmiable] = *p.ShowAmiable
	}
	return fields
}

// StylePatch builds a patch toggling the flag of a single style.
func StylePatch(style Style, show bool) (FlagPatch, error) {
	switch style {
	case StyleDriver:
		return FlagPatch{ShowDriver: boolPtr(show)}, nil
	case StyleExpressive:
		return FlagPatch{ShowExpressive: boolPtr(show)}, nil
	case StyleAnalyser:
		return FlagPatch{ShowAnalyser: boolPtr(show)}, nil
	case StyleAmiable:
		return FlagPatch{ShowAmiable: boolPtr(show)}, nil
	}
	return FlagPatch{}, ErrUnknownStyle
}

// ResultsPatch builds a patch toggling only the overall results flag.
func ResultsPatch(show bool) FlagPatch {
	return FlagPatch{ShowResults: boolPtr(show)}
}

func boolPtr(v bool) *bool {
	return &v
}
