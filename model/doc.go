// Package model defines the shared data types of the pipeline and the
// deterministic key derivation that joins the ANN index with the
// metadata table.
package model
