// Package provenance composes text out of independently authored fragments and
// remembers which lines of the result every fragment occupies.
//
// # Model
//
//   - ID – tag of one authored fragment (material body, object routine, library
//     entry). The zero ID is the default one and never names a fragment.
//   - Lines – half-open range [Start, End) of 1-based line numbers.
//   - Index – IDs mapped to Lines, ordered by ID. FindOwner turns an absolute line
//     of the composed text back into (ID, local line).
//   - Builder – growing text plus its Index and a running line cursor.
//   - Expand – substitutes named Builders into a template delimited by "//%".
//
// # Line accounting
//
// Lines are counted purely by '\n' characters; the package never looks at what the
// text means. AppendIdentified records [start, end+1): the range deliberately
// includes one line past the last line the fragment touched, so diagnostics
// reported on a boundary line still land inside the fragment.
//
// # Ownership
//
// Splice consumes its argument. A spliced (moved) Builder must not be used again;
// doing so panics.
package provenance
