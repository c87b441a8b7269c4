// Package mindgauge trains, evaluates, and serves a multi-class
// gradient-boosted-tree classifier predicting how many of the last 30 days a
// survey respondent reported poor mental health.
//
// The module is organized as a small pipeline plus a serving surface:
//
//   - schema:   the canonical 55-feature survey schema, composite columns,
//     and the sparse label codec
//   - dataset:  CSV loading, stratified splitting, balanced sample weights
//   - boost:    the softmax gradient-boosted-tree trainer and model
//   - tuner:    Bayesian hyperparameter search (GP surrogate, expected
//     improvement)
//   - metrics:  multiclass log-loss, accuracy, weighted precision/recall/F1
//   - train:    the end-to-end training step publishing three artifacts
//   - evaluate: scoring a published model against its held-out test set
//   - store:    S3/local artifact access and the lazy model accessor
//   - serve:    the batch inference HTTP server
//
// The cmd/mindgauge binary exposes the train, evaluate, and serve
// subcommands.
package mindgauge
