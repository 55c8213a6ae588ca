// Package core provides the email extraction and provider grouping pipeline.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server and the mxgroup CLI both drive it through [Service].
//
// # Pipeline
//
// One run processes one uploaded tabular file, strictly sequentially:
//
//  1. [UploadLimits.Validate] rejects oversized files and disallowed extensions
//     before anything is read.
//  2. [Service.ProcessUpload] copies the upload to a temporary file that is
//     removed on every exit path.
//  3. A [DocumentLoader] parses the file; [ScanEmails] walks the first sheet
//     row by row, left to right, yielding cells that are valid addresses.
//  4. The [Grouper] resolves each address's domain through the [MXResolver]
//     (one lookup per address, failures become an empty record list) and
//     assigns it to a [ProviderGroup].
//  5. [RenderOutputs] turns every non-empty group into a spreadsheet.
//
// # Provider Families
//
// A domain whose MX targets contain a rule's marker as a plain substring is
// merged into that rule's group. The built-in rule merges anything routed
// through google.com into the "google.com" group:
//
//	core.DefaultProviderRules // [{Key: "google.com", MXContains: "google.com"}]
//
// Rules can be replaced from YAML with [LoadProviderRules].
//
// # Error Handling
//
// Error kinds are typed ([ValidationError], [UploadTransferError],
// [DocumentLoadError]) and mapped to user-facing messages with codes by
// [MapError]. DNS failures never surface as errors; see [LookupResult].
package core
