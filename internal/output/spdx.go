package output

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
)

// dataLicense is the only license accepted in the SPDX dataLicense field.
const dataLicense = "CC0-1.0"

// ---- SPDX 2.3 schema types ----

type spdxDocument struct {
	SPDXID            string             `json:"SPDXID"`
	SpdxVersion       string             `json:"spdxVersion"`
	CreationInfo      spdxCreationInfo   `json:"creationInfo"`
	DataLicense       string             `json:"dataLicense"`
	Name              string             `json:"name"`
	DocumentNamespace string             `json:"documentNamespace"`
	Packages          []spdxPackage      `json:"packages"`
	Relationships     []spdxRelationship `json:"relationships"`
}

type spdxCreationInfo struct {
	Created  string   `json:"created"`
	Creators []string `json:"creators"`
}

type spdxPackage struct {
	SPDXID           string `json:"SPDXID"`
	Name             string `json:"name"`
	VersionInfo      string `json:"versionInfo,omitempty"`
	DownloadLocation string `json:"downloadLocation"`
	LicenseDeclared  string `json:"licenseDeclared,omitempty"`
	Homepage         string `json:"homepage,omitempty"`
	Description      string `json:"description,omitempty"`
}

type spdxRelationship struct {
	SpdxElementID      string `json:"spdxElementId"`
	RelatedSpdxElement string `json:"relatedSpdxElement"`
	RelationshipType   string `json:"relationshipType"`
}

// reSpdxIDChars matches everything an SPDX identifier may not contain:
// identifiers are restricted to letters, digits, "." and "-".
var reSpdxIDChars = regexp.MustCompile(`[^0-9a-zA-Z.-]`)

// DumpSPDX encodes the graph as an SPDX 2.3 JSON document. The document
// describes the single root build target; a store with several roots has no
// well-defined document subject.
func DumpSPDX(g *graph.Graph, opts Options) ([]byte, error) {
	roots := g.RootIDs()
	if len(roots) != 1 {
		return nil, fmt.Errorf("spdx output requires a single root derivation, found %d", len(roots))
	}
	rootID := roots[0]
	reachable := runtimeReachable(g, opts)

	doc := spdxDocument{
		SPDXID:      "SPDXRef-DOCUMENT",
		SpdxVersion: "SPDX-2.3",
		CreationInfo: spdxCreationInfo{
			Created:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
			Creators: []string{"Tool: nix-sbom-builder"},
		},
		DataLicense:       dataLicense,
		Name:              rootID,
		DocumentNamespace: fmt.Sprintf("https://spdx.org/spdxdocs/%s-%s", spdxIDSuffix(rootID), uuid.NewString()),
		Relationships: []spdxRelationship{
			{
				SpdxElementID:      "SPDXRef-DOCUMENT",
				RelatedSpdxElement: spdxID(rootID),
				RelationshipType:   "DESCRIBES",
			},
		},
	}

	for _, id := range g.IDs() {
		if !includeNode(g, id, reachable) {
			continue
		}
		node := g.Nodes[id]
		doc.Packages = append(doc.Packages, buildSpdxPackage(node))

		for _, child := range node.ChildIDs() {
			if reachable != nil && !reachable[child] {
				continue
			}
			doc.Relationships = append(doc.Relationships, spdxRelationship{
				SpdxElementID:      spdxID(id),
				RelatedSpdxElement: spdxID(child),
				RelationshipType:   "DEPENDS_ON",
			})
		}
	}

	// SPDX is JSON-only; the serialization option is ignored on purpose.
	jsonOpts := opts
	jsonOpts.Serialization = SerializationJSON
	return marshal(doc, jsonOpts)
}

func buildSpdxPackage(node *graph.Node) spdxPackage {
	name := node.Name()
	if name == "" {
		name = node.ID
	}

	pkg := spdxPackage{
		SPDXID:           spdxID(node.ID),
		Name:             name,
		VersionInfo:      node.Version(),
		DownloadLocation: "NOASSERTION",
		Description:      node.Description(),
	}
	if url := node.URL(); url != "" {
		pkg.DownloadLocation = url
	}
	if homepages := node.Homepages(); len(homepages) > 0 {
		pkg.Homepage = homepages[0]
	}
	for _, license := range node.Licenses() {
		switch {
		case license.SpdxID != "":
			pkg.LicenseDeclared = license.SpdxID
		case license.Name != "" && pkg.LicenseDeclared == "":
			pkg.LicenseDeclared = license.Name
		}
		if license.SpdxID != "" {
			break
		}
	}
	return pkg
}

// spdxID derives an SPDX identifier from a derivation store path.
func spdxID(derivationPath string) string {
	return "SPDXRef-" + spdxIDSuffix(derivationPath)
}

func spdxIDSuffix(derivationPath string) string {
	trimmed := strings.TrimPrefix(derivationPath, "/nix/store/")
	return reSpdxIDChars.ReplaceAllString(trimmed, "-")
}
