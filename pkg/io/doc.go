// Package io provides JSON import and export for map scenes.
//
// # Overview
//
// The JSON format is a direct rendering of [scene.Map]: a sequence, a list
// of rings, features referring to rings by index, and legends. It is the
// hand-off point for upstream tools that parse GenBank, EMBL or tabular
// annotation and want a map drawn.
//
// # JSON Format
//
// Only "sequence_length" is required:
//
//	{
//	  "title": "pUC19",
//	  "sequence_length": 2686,
//	  "rings": [
//	    {"strand": "forward", "thickness": 12, "show_labels": true},
//	    {"strand": "reverse", "thickness": 12, "spacing": 2}
//	  ],
//	  "features": [
//	    {"ring": 0, "name": "lacZ", "ranges": [
//	      {"start": 146, "stop": 469, "decoration": "clockwise-arrow",
//	       "color": "#3366cc", "label": "lacZ alpha"}
//	    ]}
//	  ],
//	  "legends": [
//	    {"position": "upper-right", "items": [
//	      {"text": "CDS", "color": "#3366cc", "swatch": true}
//	    ]}
//	  ]
//	}
//
// Colours are "#rgb", "#rrggbb", "#rrggbbaa" or a CSS colour name. Style
// fields left out take the values of [scene.DefaultStyle].
//
// # Validation
//
// [ReadJSON] rejects malformed JSON, a non-positive sequence length, and
// unknown enumeration values or colours. Ranges that do not fit the
// sequence are left in place: the renderer skips them with a warning, and
// [scene.Map.Validate] reports them in full.
//
// # Round Trip
//
// [WriteJSON] emits every style field, so exporting a map and importing it
// again yields an identical scene.
//
// [scene.Map]: github.com/matzehuels/cgmap/pkg/scene.Map
// [scene.DefaultStyle]: github.com/matzehuels/cgmap/pkg/scene.DefaultStyle
// [scene.Map.Validate]: github.com/matzehuels/cgmap/pkg/scene.Map.Validate
package io
