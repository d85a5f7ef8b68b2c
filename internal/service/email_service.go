package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"forum-backend/config"
	"forum-backend/internal/util"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	jwtSecret   string
	frontendURL string
}

func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:    config.AppConfig.SMTPHost,
		smtpPort:    config.AppConfig.SMTPPort,
		username:    config.AppConfig.SMTPUsername,
		password:    config.AppConfig.SMTPPassword,
		jwtSecret:   config.AppConfig.JWTSecret,
		frontendURL: config.AppConfig.FrontendURL,
	}
}

// SendWelcomeEmail 在注册成功后发送欢迎邮件
func (s *EmailService) SendWelcomeEmail(email, username string) error {
	subject := "欢迎加入论坛"
	body := fmt.Sprintf("亲爱的 %s，<br><br>欢迎加入我们的社区！现在就去发布你的第一个帖子吧：<br><a href=\"%s\">%s</a>", username, s.frontendURL, s.frontendURL)

	s.sendEmailAsync(email, subject, body)
	return nil
}

// SendPasswordResetEmail 发送密码重置邮件
func (s *EmailService) SendPasswordResetEmail(email string) error {
	token, err := s.generatePasswordResetToken(email)
	if err != nil {
		util.Logger.Error("生成密码重置令牌失败", zap.Error(err))
		return fmt.Errorf("生成密码重置令牌失败: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	subject := "重置您的密码"
	body := fmt.Sprintf("请点击以下链接重置您的密码：<br><a href=\"%s\">%s</a><br><br>此链接将在1小时后过期。如果这不是您本人的操作，请忽略此邮件。", resetLink, resetLink)

	s.sendEmailAsync(email, subject, body)
	return nil
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}

func (s *EmailService) generatePasswordResetToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"purpose": "password_reset",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyPasswordResetToken 校验密码重置令牌并返回其中的邮箱
func (s *EmailService) VerifyPasswordResetToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		util.Logger.Error("解析令牌失败", zap.Error(err))
		return "", fmt.Errorf("无效的令牌: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("无效的令牌")
	}
	if purpose, _ := claims["purpose"].(string); purpose != "password_reset" {
		return "", fmt.Errorf("无效的令牌用途")
	}
	email, ok := claims["email"].(string)
	if !ok {
		return "", fmt.Errorf("无效的令牌: 缺少邮箱信息")
	}
	return email, nil
}
