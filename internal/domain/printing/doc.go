// Package printing contains the domain model for printable documents:
// HTML print templates and the jobs that render them to PDF.
//
// Three document types are supported: party ledger statements, purchase
// orders and payment receipts. A template belongs to one document type;
// each type has at most one default template per tenant. A print job is
// the audit record of one rendering run and moves through a small state
// machine (pending, rendering, then completed or failed). Completed jobs
// keep the object-storage key of the generated PDF so it can be served
// again without re-rendering.
package printing
