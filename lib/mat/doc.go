// Package mat provides the numeric value types exchanged with the remote
// simulation application: homogeneous poses, joint vectors and a growable
// column-major matrix.
//
// The package contains:
//   - Pose: a 4x4 homogeneous transform (rotation + translation) with helpers
//     to build and combine transforms and to convert to/from XYZWPR Euler form
//   - Joints: an ordered vector of actuator positions (one value per axis)
//   - Matrix: a dynamically growing 2D matrix of float64 values stored in
//     column-major order, used for variable-sized results such as lists of
//     inverse-kinematic solutions
//
// All three types mirror the layout the wire protocol uses, so the rpc/wire
// package can serialize them without copying or reordering: poses are 16
// doubles in column-major order, matrices are column-major with explicit
// row/column counts, and joint vectors carry an explicit length prefix.
//
// None of the types are thread-safe; each belongs to a single call sequence
// at a time, which matches the strictly synchronous protocol model.
package mat
