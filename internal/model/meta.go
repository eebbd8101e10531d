package model

import "encoding/json"

// Package is the authoritative metadata record for a package, as exported by
// `nix-env -qa --meta --json`.
type Package struct {
	Name       string `json:"name"`
	PName      string `json:"pname"`
	Version    string `json:"version"`
	System     string `json:"system"`
	OutputName string `json:"outputName"`
	Meta       Meta   `json:"meta"`
}

// Packages maps a package name to its metadata record.
type Packages map[string]*Package

// Meta carries the nested "meta" attribute set of a package.
type Meta struct {
	Description string      `json:"description"`
	Homepage    Homepages   `json:"homepage"`
	License     Licenses    `json:"license"`
	Maintainers Maintainers `json:"maintainers"`
	Broken      bool        `json:"broken"`
	Insecure    bool        `json:"insecure"`
	Unfree      bool        `json:"unfree"`
	Unsupported bool        `json:"unsupported"`
}

// Homepages is a homepage attribute that upstream encodes either as a single
// string or as a list of strings.
type Homepages []string

func (h *Homepages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*h = Homepages{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*h = Homepages(many)
	return nil
}

// License is either a bare license name or a structured license record.
type License struct {
	// Name is set when the license is a bare string (e.g. "GPL-3.0").
	Name string

	SpdxID          string `json:"spdxId"`
	FullName        string `json:"fullName"`
	ShortName       string `json:"shortName"`
	URL             string `json:"url"`
	Free            bool   `json:"free"`
	Redistributable bool   `json:"redistributable"`
	Deprecated      bool   `json:"deprecated"`
}

func (l *License) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		l.Name = name
		return nil
	}
	type structured License
	var s structured
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = License(s)
	return nil
}

// Licenses is a license attribute that upstream encodes as a bare name, a
// structured record, or a list of either.
type Licenses []License

func (l *Licenses) UnmarshalJSON(data []byte) error {
	var single License
	if err := json.Unmarshal(data, &single); err == nil {
		*l = Licenses{single}
		return nil
	}
	var many []License
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = Licenses(many)
	return nil
}

// Maintainer identifies one package maintainer.
type Maintainer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	GitHub string `json:"github"`
}

// Maintainers is a maintainer list. Some upstream packages carry a known
// malformed doubly-nested shape ([[{...}]] instead of [{...}]), which is
// flattened on decode.
type Maintainers []Maintainer

func (m *Maintainers) UnmarshalJSON(data []byte) error {
	var flat []Maintainer
	if err := json.Unmarshal(data, &flat); err == nil {
		*m = Maintainers(flat)
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var result []Maintainer
	for _, entry := range raw {
		var one Maintainer
		if err := json.Unmarshal(entry, &one); err == nil {
			result = append(result, one)
			continue
		}
		var nested []Maintainer
		if err := json.Unmarshal(entry, &nested); err != nil {
			return err
		}
		result = append(result, nested...)
	}
	*m = Maintainers(result)
	return nil
}
