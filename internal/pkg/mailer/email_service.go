// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"html"
	"net/url"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReplyNotification(toEmail, subject, reply string) error
	SendWelcome(toEmail, displayName string, credits int) error
	SendEmailVerification(toEmail, displayName, token string) error
}

type emailService struct {
	send        func(m *gomail.Message) error
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, frontendURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		send:        func(m *gomail.Message) error { return d.DialAndSend(m) },
		senderEmail: senderEmail,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) newMessage(toEmail, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendReplyNotification(toEmail, subject, reply string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>문의하신 내용에 답변이 등록되었습니다</h2>
			<p><strong>%s</strong></p>
			<blockquote style="border-left: 4px solid #03C75A; padding-left: 12px;">%s</blockquote>
			<a href="%s/messages" style="background-color: #03C75A; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">답변 확인하기</a>
		</div>
	`, html.EscapeString(subject), html.EscapeString(reply), s.frontendURL)

	m := s.newMessage(toEmail, "[문의 답변] "+subject, body)
	if err := s.send(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send reply notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Reply notification sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendWelcome(toEmail, displayName string, credits int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s님, 환영합니다!</h2>
			<p>가입 축하 이용권 <strong>%d회</strong>가 지급되었습니다.</p>
			<a href="%s" style="background-color: #03C75A; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">블로그 글 작성하기</a>
		</div>
	`, html.EscapeString(displayName), credits, s.frontendURL)

	m := s.newMessage(toEmail, "가입을 환영합니다", body)
	if err := s.send(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send welcome mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Welcome mail sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendEmailVerification(toEmail, displayName, token string) error {
	link := s.frontendURL + "/verify-email?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s님, 이메일 주소를 인증해주세요</h2>
			<p>아래 버튼을 누르면 인증이 완료되고 추가 이용권을 받을 수 있습니다. 링크는 24시간 동안 유효합니다.</p>
			<a href="%s" style="background-color: #03C75A; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">이메일 인증하기</a>
		</div>
	`, html.EscapeString(displayName), html.EscapeString(link))

	m := s.newMessage(toEmail, "이메일 인증을 완료해주세요", body)
	if err := s.send(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send verification mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Verification mail sent to %s\n", toEmail)
	return nil
}
