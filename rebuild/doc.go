// Package rebuild reconstructs values from flat leaf sequences and shape
// trees.
//
// Several strategies implement the identical (values, shape) -> value
// contract at different performance points; a pure selector picks one from
// shape statistics and tunable thresholds. All strategies consume leaves in
// exactly the order extraction produced them and fail loudly on any count
// mismatch.
package rebuild
