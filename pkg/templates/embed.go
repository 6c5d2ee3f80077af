// Package templates embeds the default forum theme and its stylesheet.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the file name of the default stylesheet inside AssetsFS.
const StylesheetName = "forumview.css"

// DefaultTheme is the theme directory shipped in TemplatesFS.
const DefaultTheme = "default"

// ShellTemplate is the standalone HTML page wrapping a rendered screen.
const ShellTemplate = "shell/page.tpl"

// TemplatesFS exposes the theme tree: <theme>/html/<screen>/<layout>.tpl and
// <theme>/layouts/<unit>/<template>.tpl.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the stylesheet bundle.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
