// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// リクエストID付与、zerologによるリクエストログ、パニックリカバリ、
// ハンドラが積んだエラーのProblemレスポンス化、CORS設定、
// 呼び出し元のJWT認証を含む。
package middleware
