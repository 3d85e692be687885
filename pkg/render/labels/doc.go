// Package labels places feature labels around the map without overlaps.
//
// Every label-eligible range yields one [Candidate]: a text box attached to
// the map at a requested angle, on the outer or inner side of the rings.
// [Engine.Layout] runs the candidates through seven stages, each working on
// the survivors of the one before:
//
//  1. quota trim: cap the number of labels, preferring ones that clash
//  2. angular sort
//  3. angular relaxation: push overlapping neighbours apart
//  4. radial extension: lengthen leader lines, then drop or convert
//  5. residual clash removal over all pairs
//  6. structural clash removal against reserved regions and the canvas
//  7. draw order, forced labels last
//
// Forced labels are never removed. Box padding shrinks from stage to
// stage so early passes leave room and late passes are exact.
//
// # Quality
//
// [Config.Quality] (1-10) trades time for layout: it selects the
// relaxation iteration budget, the neighbourhood scanned in stage 4 and
// the shift applied per relaxation step.
//
// # Randomness
//
// Stages 1 and 5 shuffle candidates. With a non-zero [Config.Seed] the
// shuffle, and therefore the layout, is reproducible; with zero the seed
// is taken from the clock.
package labels
