package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vietthang09/huth-shop-ui-sub003/pkg/gate"
)

// AccessGate はすべてのリクエストにアクセスゲートを適用するGinミドルウェアを返す。
// 通過時は解決済みトークンをコンテキストに設定し、リダイレクト時は302で処理を打ち切る。
// トークンの解決失敗は呼び出し元に通知せず、トークン無しとして判定する。
func AccessGate(g *gate.Gate, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := ResolveSession(c.Request, secret)
		if res.IsFailed() && gin.IsDebugging() {
			log.Printf("[Gate] トークンの解決に失敗: path=%s, error=%v", c.Request.URL.Path, res.Err())
		}

		action := g.Decide(c.Request.URL.Path, res)
		if action.Kind == gate.ActionRedirect {
			c.Redirect(http.StatusFound, action.Target)
			c.Abort()
			return
		}

		if token, ok := res.Token(); ok {
			c.Set(contextKeyToken, token)
		}
		c.Next()
	}
}
