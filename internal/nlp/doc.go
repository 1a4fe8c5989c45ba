// Package nlp parses quick-add strings into structured task drafts.
//
// Parsing is a pure function of the input and a reference date: no I/O, no
// clock reads, and it never fails — anything it cannot interpret stays in the
// title. The grammar covers explicit due/scheduled keywords, bare future
// dates, priorities (p1..p3 and !-markers), #tags, multi-word +Projects, and
// a details segment introduced by "//".
//
// Bare dates land on the scheduled field and roll forward to the next
// occurrence when the year is omitted and the date would be in the past.
// Explicit keywords (due, by, do, sch, on, start, scheduled) accept past
// dates verbatim. A bare weekday name resolves to the strictly future
// occurrence — never today, even when today is that weekday.
package nlp
