// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE (and therefore JSON) documents into Go values
// after validating them against an embedded schema definition.
//
// The flow is always the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with a schema definition
//  3. Validate and decode into the target struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[rawManifest](
//	    schema,
//	    data,
//	    "#Manifest",
//	    cueutil.WithFilename("alpha_bp/manifest.json"),
//	)
//	if err != nil {
//	    return nil, err // *cueutil.ParseError listing every problem by path
//	}
//
// Because JSON is a subset of CUE, descriptor files are parsed through the
// same entry point; "//" comments that some JSON authoring tools leave in
// place are tolerated.
package cueutil
