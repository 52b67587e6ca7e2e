package jwt

import (
	"testing"
	"time"

	"gradcheck/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "gradcheck-test",
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "student", "컴퓨터공학과")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("期望 Role=student，实际=%s", claims.Role)
	}
	if claims.Major != "컴퓨터공학과" {
		t.Errorf("期望 Major=컴퓨터공학과，实际=%s", claims.Major)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.Issuer != "gradcheck-test" {
		t.Errorf("期望 Issuer=gradcheck-test，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("AccessToken TTL 期望约15分钟，实际=%v", ttl)
	}
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	m := newTestManager()

	t1, _ := m.GenerateAccessToken("user-1", "student", "")
	t2, _ := m.GenerateAccessToken("user-1", "student", "")
	c1, _ := m.ParseToken(t1)
	c2, _ := m.ParseToken(t2)
	if c1 == nil || c2 == nil {
		t.Fatal("token 解析失败")
	}
	if c1.ID == c2.ID {
		t.Error("两次签发的 JTI 不应相同")
	}
}

func TestNewManager_DefaultIssuer(t *testing.T) {
	m := NewManager(&config.AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Minute})
	token, _ := m.GenerateAccessToken("u", "student", "")
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}
	if claims.Issuer != "gradcheck" {
		t.Errorf("期望默认 Issuer=gradcheck，实际=%s", claims.Issuer)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err == nil {
		t.Error("期望解析无效 token 返回错误")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "gradcheck-test",
	})

	token, _ := m1.GenerateAccessToken("user-1", "student", "")
	_, err := m2.ParseToken(token)
	if err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "someone-else",
	})

	token, _ := m1.GenerateAccessToken("user-1", "student", "")
	if _, err := m2.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("签发方不同应返回 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 1 * time.Millisecond,
	})

	token, _ := m.GenerateAccessToken("user-1", "student", "")
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err == nil {
		t.Error("过期 token 不应通过验证")
	}
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
