// Package script compiles operator-supplied repair scripts and evaluates
// them against rejected tab-separated records.
//
// A repair script is JavaScript text defining a single entry point:
//
//	function process(record, errors) {
//	    var f = tsvToArray(record);
//	    f[1] = "FIXED";
//	    return arrayToTsv(f);
//	}
//
// Compile wraps the user source in a fixed harness (the tsvToArray and
// arrayToTsv helpers plus the invocation glue) and compiles the whole
// thing once. Evaluate runs the compiled unit against a fresh JavaScript
// runtime per record, binds the record and its validation errors, and
// reads back the script's decision: a string means repair with that
// value, anything else means discard.
//
// The harness communicates with the user script through three reserved
// global names carrying an unlikely prefix. The prefix is best-effort
// collision avoidance for ordinary operator scripts, not a sandbox
// boundary; scripts are trusted input.
package script
