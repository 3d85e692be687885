// Package scene defines the resolved scene graph a circular map is drawn
// from: the sequence, its rings, features and their ranges, and legends.
//
// The graph is stored as arenas. [Map.Rings] and [Map.Features] are slices
// and everything refers to its owner by index ([Feature.Ring], [RangeID]),
// so there are no back pointers and copying a Map copies the whole scene.
//
// Positions are 1-based and inclusive. A [Range] whose Start is greater
// than its Stop runs through the origin: Start..N followed by 1..Stop.
// For drawing, base b occupies the continuous interval [b-1, b] on an axis
// running from 0 to N, so a range covers [Start-1, Stop].
//
// Styling is already resolved when a Map reaches the renderer; loaders
// (see package io) are responsible for defaults and inheritance.
package scene
