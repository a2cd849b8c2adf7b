// Package gateway はWebex会議ゲートウェイの内部実装を提供する。
//
// クライアントアプリケーションにWebexのアクセストークンを持たせないよう、
// 会議作成・ゲストとしての会議参加・ゲストトークン発行の3操作を仲介する。
// 入力を検証し、上流向けのペイロードを組み立て、トークンを付与して転送する。
// 上流のレスポンスボディは成功時も失敗時も加工せずに返す。
package gateway
