// Package webex はWebex REST APIへ認証付きリクエストを送るクライアントを提供する。
//
// プロセス全体で1つのアクセストークン（Bearer）を保持し、
// JSONペイロードを指定パスへPOSTして、ステータスコードと
// 加工していないレスポンスボディを呼び出し元へ返す。
// リトライやレスポンス形式の検証は行わない。
package webex
