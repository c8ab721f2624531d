// Package viz draws traced images in the terminal.
//
//   - [Canvas]: Braille dot canvas, two by four dots per cell
//   - [Shade]: colored block rendering of a square map
//   - [Viewer]: a Bubble Tea program to page through orders, Stokes
//     components and observation times
//
// # Key Bindings
//
//	o     - Cycle composite / order n
//	s     - Cycle Stokes component
//	[ ]   - Previous / next observation time
//	b     - Toggle Braille and shaded rendering
//	c     - Cycle color themes
//	?     - Show help overlay
//	q     - Quit
package viz
