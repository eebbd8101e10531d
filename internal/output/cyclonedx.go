package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
)

// ---- CycloneDX 1.4 schema types ----

type cdxBOM struct {
	BOMFormat    string          `json:"bomFormat" yaml:"bomFormat"`
	SpecVersion  string          `json:"specVersion" yaml:"specVersion"`
	Version      int             `json:"version" yaml:"version"`
	SerialNumber string          `json:"serialNumber" yaml:"serialNumber"`
	Metadata     cdxMetadata     `json:"metadata" yaml:"metadata"`
	Components   []cdxComponent  `json:"components" yaml:"components"`
	Dependencies []cdxDependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

type cdxMetadata struct {
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	Tools     []cdxTool `json:"tools" yaml:"tools"`
}

type cdxTool struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

type cdxComponent struct {
	BOMRef             string                 `json:"bom-ref" yaml:"bom-ref"`
	Type               string                 `json:"type" yaml:"type"`
	Scope              string                 `json:"scope" yaml:"scope"`
	Name               string                 `json:"name" yaml:"name"`
	Version            string                 `json:"version,omitempty" yaml:"version,omitempty"`
	PURL               string                 `json:"purl,omitempty" yaml:"purl,omitempty"`
	Description        string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Author             string                 `json:"author,omitempty" yaml:"author,omitempty"`
	Licenses           []cdxLicenseChoice     `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	ExternalReferences []cdxExternalReference `json:"externalReferences,omitempty" yaml:"externalReferences,omitempty"`
	Pedigree           *cdxPedigree           `json:"pedigree,omitempty" yaml:"pedigree,omitempty"`
}

type cdxLicenseChoice struct {
	Expression string      `json:"expression,omitempty" yaml:"expression,omitempty"`
	License    *cdxLicense `json:"license,omitempty" yaml:"license,omitempty"`
}

type cdxLicense struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

type cdxExternalReference struct {
	Type string `json:"type" yaml:"type"`
	URL  string `json:"url" yaml:"url"`
}

type cdxPedigree struct {
	Commits []cdxCommit `json:"commits" yaml:"commits"`
}

type cdxCommit struct {
	URL string `json:"url" yaml:"url"`
}

// cdxDependency is one node of the CycloneDX dependency graph. Refs are
// derivation store paths, matching the component bom-refs.
type cdxDependency struct {
	Ref       string   `json:"ref" yaml:"ref"`
	DependsOn []string `json:"dependsOn" yaml:"dependsOn"`
}

// DumpCycloneDX encodes the graph as a CycloneDX 1.4 document.
func DumpCycloneDX(g *graph.Graph, opts Options) ([]byte, error) {
	return marshal(buildCycloneDX(g, opts), opts)
}

func buildCycloneDX(g *graph.Graph, opts Options) cdxBOM {
	reachable := runtimeReachable(g, opts)

	var components []cdxComponent
	var dependencies []cdxDependency
	for _, id := range g.IDs() {
		if !includeNode(g, id, reachable) {
			continue
		}
		node := g.Nodes[id]
		component, ok := buildComponent(g, node)
		if !ok {
			continue
		}
		components = append(components, component)

		if len(node.Children) == 0 && len(node.Patches) == 0 {
			continue
		}
		dep := cdxDependency{Ref: id, DependsOn: []string{}}
		for _, child := range node.ChildIDs() {
			if reachable != nil && !reachable[child] {
				continue
			}
			dep.DependsOn = append(dep.DependsOn, child)
		}
		if reachable == nil {
			dep.DependsOn = append(dep.DependsOn, node.PatchIDs()...)
		}
		if len(dep.DependsOn) > 0 {
			dependencies = append(dependencies, dep)
		}
	}

	return cdxBOM{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		Version:      1,
		SerialNumber: "urn:uuid:" + uuid.NewString(),
		Metadata: cdxMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Tools: []cdxTool{
				{
					Vendor:  "StinkyLord",
					Name:    "nix-sbom-builder",
					Version: opts.ToolVersion,
				},
			},
		},
		Components:   components,
		Dependencies: dependencies,
	}
}

// buildComponent maps one package node to a CycloneDX component. Nodes whose
// name cannot be inferred produce no component: an SBOM entry with no name
// is useless to every consumer downstream.
func buildComponent(g *graph.Graph, node *graph.Node) (cdxComponent, bool) {
	name := node.Name()
	if name == "" {
		return cdxComponent{}, false
	}

	component := cdxComponent{
		BOMRef: node.ID,
		Type:   "application",
		// If Nix built it, something required it.
		Scope:       "required",
		Name:        name,
		Version:     node.Version(),
		PURL:        node.Purl().String(),
		Description: node.Description(),
		Author:      componentAuthor(node),
	}

	for _, homepage := range node.Homepages() {
		component.ExternalReferences = append(component.ExternalReferences,
			cdxExternalReference{Type: "website", URL: homepage})
	}
	for _, gitURL := range node.GitURLs() {
		component.ExternalReferences = append(component.ExternalReferences,
			cdxExternalReference{Type: "vcs", URL: gitURL})
	}

	for _, license := range node.Licenses() {
		if license.Name != "" {
			component.Licenses = append(component.Licenses,
				cdxLicenseChoice{Expression: license.Name})
			continue
		}
		if license.SpdxID == "" {
			continue
		}
		component.Licenses = append(component.Licenses, cdxLicenseChoice{
			License: &cdxLicense{ID: license.SpdxID, Name: license.FullName},
		})
	}

	if commits := patchCommits(g, node); len(commits) > 0 {
		component.Pedigree = &cdxPedigree{Commits: commits}
	}

	return component, true
}

// componentAuthor joins the maintainers into a single author string,
// "Name (email)" per maintainer.
func componentAuthor(node *graph.Node) string {
	var parts []string
	for _, m := range node.Maintainers() {
		if m.Email != "" {
			parts = append(parts, m.Name+" ("+m.Email+")")
		} else if m.Name != "" {
			parts = append(parts, m.Name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	author := parts[0]
	for _, p := range parts[1:] {
		author += " " + p
	}
	return author
}

// patchCommits renders the node's patches as pedigree commits, one per
// patch derivation that declares a download URL.
func patchCommits(g *graph.Graph, node *graph.Node) []cdxCommit {
	var commits []cdxCommit
	for _, patchID := range node.PatchIDs() {
		patch, ok := g.Nodes[patchID]
		if !ok {
			continue
		}
		url := patch.MainDerivation.FirstURL()
		if url == "" {
			continue
		}
		commits = append(commits, cdxCommit{URL: url})
	}
	return commits
}
