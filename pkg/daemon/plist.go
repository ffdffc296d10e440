package daemon

import (
	"github.com/beevik/etree"

	"github.com/skhdtools/skhdctl/pkg/errors"
)

// plistInfo is the slice of a launchd job definition skhdctl cares
// about: how the daemon was invoked and where it logs.
type plistInfo struct {
	Label             string
	ProgramArguments  []string
	StandardOutPath   string
	StandardErrorPath string
}

// parsePlist extracts plistInfo from launchd property list XML. The
// top-level structure is <plist><dict> with alternating <key> and
// value elements.
func parsePlist(data []byte) (*plistInfo, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrPlistParse, "invalid plist XML")
	}

	root := doc.SelectElement("plist")
	if root == nil {
		return nil, errors.New(errors.ErrPlistParse, "missing <plist> root element")
	}
	dict := root.SelectElement("dict")
	if dict == nil {
		return nil, errors.New(errors.ErrPlistParse, "missing top-level <dict> element")
	}

	info := &plistInfo{}
	children := dict.ChildElements()
	for i := 0; i+1 < len(children); i += 2 {
		key, value := children[i], children[i+1]
		if key.Tag != "key" {
			return nil, errors.Newf(errors.ErrPlistParse,
				"malformed <dict>: expected <key>, found <%s>", key.Tag)
		}

		switch key.Text() {
		case "Label":
			info.Label = value.Text()
		case "ProgramArguments":
			for _, s := range value.SelectElements("string") {
				info.ProgramArguments = append(info.ProgramArguments, s.Text())
			}
		case "StandardOutPath":
			info.StandardOutPath = value.Text()
		case "StandardErrorPath":
			info.StandardErrorPath = value.Text()
		}
	}
	return info, nil
}

// configArg returns the config path pinned by the -c/--config program
// argument, or "" when the daemon runs on its default search paths.
func (p *plistInfo) configArg() string {
	for i, arg := range p.ProgramArguments {
		if (arg == "-c" || arg == "--config") && i+1 < len(p.ProgramArguments) {
			return p.ProgramArguments[i+1]
		}
	}
	return ""
}
