// Package pkg provides the libraries behind cgmap, a renderer for circular
// DNA maps.
//
// # Overview
//
// A scene document describes a sequence, its feature rings and legends.
// cgmap draws it as a circular map, either whole or as a zoomed window,
// and places feature labels so they do not collide:
//
//	scene JSON
//	     ↓
//	[io]        decode into a [scene.Map]
//	     ↓
//	[render]    rings, ruler, legends and the label engine
//	     ↓
//	[render/sink]  SVG, PNG and label-bounds JSON
//
// [pipeline] ties these together with an artifact cache ([cache]), and
// [session] keeps renderers alive between requests so a zoomed view can
// pan without reshuffling its labels. [api] serves both over HTTP.
//
// # Quick Start
//
//	sc, _ := pipeline.LoadSceneFile(ctx, "puc19.json", nil)
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.ExecuteScene(ctx, sc, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	    Zoom:    4,
//	    Center:  2600,
//	})
//	os.WriteFile("puc19.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
package pkg
