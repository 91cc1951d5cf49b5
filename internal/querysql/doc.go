// Package querysql builds parameterized, deterministically ordered SQLite
// queries from a small predicate tree.
//
// Every compiled query ends with an ORDER BY whose last key is
// "id COLLATE BINARY ASC", so two reads of the same rows always return them
// in the same order. Values are never interpolated into SQL text; identifiers
// (table, column and order keys) are checked against a strict pattern.
//
// Example:
//
//	q := querysql.Select{
//		From:    "submissions",
//		Columns: []string{"id", "seq", "weight"},
//		Filter: querysql.And{Predicates: []querysql.Predicate{
//			querysql.Equals{Field: "sender", Value: "did:t3:auditor-7"},
//			querysql.AtLeast{Field: "seq", Value: int64(10)},
//		}},
//		OrderBy: []string{"seq"},
//	}
//	sql, params, err := querysql.Compile(q)
//
// produces
//
//	SELECT id, seq, weight FROM submissions WHERE sender = ? AND seq >= ?
//	ORDER BY seq ASC, id COLLATE BINARY ASC
package querysql
