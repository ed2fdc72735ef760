package domain

import (
	"errors"
	"net/mail"
	"strings"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email address too long")
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrRatingOutOfRange = errors.New("rating out of range")
	ErrWrongRatingCount = errors.New("wrong number of ratings")
)

// RFC 5322 邮箱地址最大长度
const MaxEmailLength = 254

// ValidateEmail 验证邮箱地址格式
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePort 验证 SMTP 端口号
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// ValidateScores 验证原始分值：题目数量固定，分值在 1-5 之间
func ValidateScores(scores []int) error {
	if len(scores) != FeedbackQuestionCount {
		return ErrWrongRatingCount
	}
	for _, score := range scores {
		if score < MinRating || score > MaxRating {
			return ErrRatingOutOfRange
		}
	}
	return nil
}

// ValidateRatings 验证已构建的问卷评分，规则与 ValidateScores 一致
func ValidateRatings(ratings []Rating) error {
	scores := make([]int, 0, len(ratings))
	for _, r := range ratings {
		scores = append(scores, r.Score)
	}
	return ValidateScores(scores)
}
