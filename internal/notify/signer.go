package notify

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

const EventAttachmentsAdded = "attachments_added"

// AttachmentRef: то, что получатель узнаёт о новом вложении
type AttachmentRef struct {
	ID        domain.AttachmentID `json:"id"`
	VersionID domain.VersionID    `json:"version_id"`
	AuthorID  domain.UserID       `json:"author_id"`
	Filename  string              `json:"filename"`
	SizeBytes int64               `json:"size_bytes"`
}

// Claims: содержимое подписанного сообщения
type Claims struct {
	Event       string          `json:"event"`
	Attachments []AttachmentRef `json:"attachments"`
	jwt.RegisteredClaims
}

// Signer подписывает сообщения HS256, чтобы получатель мог проверить отправителя.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(secret, issuer string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

func (s *Signer) Issue(event string, atts []domain.Attachment) (string, error) {
	now := time.Now().UTC()
	refs := make([]AttachmentRef, 0, len(atts))
	for _, a := range atts {
		refs = append(refs, AttachmentRef{
			ID:        a.ID,
			VersionID: a.VersionID,
			AuthorID:  a.AuthorID,
			Filename:  a.Filename,
			SizeBytes: a.SizeBytes,
		})
	}

	cl := Claims{
		Event:       event,
		Attachments: refs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(s.secret)
}

// Parse проверяет подпись и сроки. Им пользуется получатель уведомлений
// (почтовый сервис), чтобы убедиться, что сообщение выпущено этим сервисом.
func (s *Signer) Parse(raw string) (Claims, error) {
	var out Claims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil {
		return Claims{}, err
	}
	if !tkn.Valid {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}
	return out, nil
}
