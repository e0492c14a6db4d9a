// Package grading holds the pure result computation rules: weighted subject totals, grade
// classification, performance summaries, cohort ranking, attendance, active-term
// normalisation, student identifier formatting and report card transitions.
//
// Functions operate on plain model values and never touch storage; callers persist the
// returned values only when no error is reported.
package grading
