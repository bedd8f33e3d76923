// Package geometry provides the planar primitives shared by the stroke
// recognizers.
//
// All coordinates live in the caller's continuous world space. Nothing in
// this package holds state; every function is safe for concurrent use.
//
// # Polylines
//
// Point sequences are thin wrappers over orb.LineString, so bounds, path
// length and segment distance come from github.com/paulmach/orb/planar and
// point reduction comes from github.com/paulmach/orb/simplify:
//
//   - Simplify: radial reduction, keeps a point once it is far enough from
//     the last kept point and always keeps both endpoints
//   - BoundsOf: axis-aligned bounding box
//   - PathLength: distance actually travelled by the pen
//   - PointToLineDistance, PointToSegmentDistance, PointToPolylineDistance
//
// # Numeric Routines
//
// The fitters only ever need a 3×3 linear solve and the principal axis of a
// 2×2 covariance matrix, so both are implemented in closed form here rather
// than through a general linear-algebra dependency. Both report failure
// instead of returning NaN or Inf.
package geometry
