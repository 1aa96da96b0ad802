// Package domain models NYC Department of Health restaurant inspection
// results for coffee/tea establishments.
//
// # Data Source
//
// Records come from the NYC Open Data dataset "DOHMH New York City
// Restaurant Inspection Results" (Socrata id 43nn-pn8j), filtered to
// cuisine_description = "Coffee/Tea". Each row is one violation line of one
// inspection, so the same establishment (dba) can appear many times.
//
// # Source Conventions
//
// Every value arrives as a JSON string, including numbers:
//
//	{"dba":"JOE COFFEE","building":"131","street":"W 21ST ST","zipcode":"10011",
//	 "phone":"2129247400","boro":"Manhattan","grade":"A","score":"12",
//	 "inspection_date":"2024-03-14T00:00:00.000",
//	 "violation_description":"Non-food contact surface improperly constructed."}
//
// Grades:
//
//	A, B and C are letter grades. The dataset also carries N (not yet graded),
//	Z (grade pending) and P (pending after reopening). Only A, B and C are
//	kept; anything else normalizes to absent.
//
// Scores:
//
//	Lower is better. The public grading scale is 0-13 A, 14-27 B, 28+ C.
//	See [ScoreGuide].
//
// Phone numbers:
//
//	Usually ten bare digits ("2129247400"). Malformed values ("__________",
//	international numbers) are shown as received. See [FormatPhone].
//
// # Missing Data
//
// Normalization never fails. Missing, empty, wrong-typed or out-of-range
// values become absent, and every accessor on [Record] reports presence
// explicitly. Aggregations skip absent values instead of bucketing them.
package domain
