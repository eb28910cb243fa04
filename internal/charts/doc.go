// Package charts renders analysis results as PNG images with gonum/plot.
//
// A Chart is a plain description (labels, values, samples or a matrix and a
// Kind); the Renderer turns it into an image on disk and keeps the encoded
// bytes for the slide deck and the HTML report. RenderAll draws independent
// charts concurrently and skips the ones with no data.
package charts
