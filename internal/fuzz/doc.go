// Package fuzztests houses Go fuzz harnesses for the parts of shadeweave that
// read untrusted text: compiler logs, templates and scene documents. The
// harnesses guard against panics and check the line bookkeeping on arbitrary
// inputs.
package fuzztests
