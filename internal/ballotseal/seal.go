// Package ballotseal seals secret ballots for storage: a salted hash that
// serves as the voter's receipt and an AES-GCM ciphertext of the selection.
// Keys are derived per election so one leaked key never opens another
// election's ballots.
package ballotseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

const saltSize = 16

type Sealer struct {
	secret []byte
}

func New(secret string) *Sealer {
	return &Sealer{secret: []byte(secret)}
}

type SealedBallot struct {
	Hash       string
	Ciphertext []byte
}

// Seal produces the ballot hash and the encrypted payload for a selection.
// The hash preimage includes a random salt, so identical selections still
// yield distinct, non-reversible hashes.
func (s *Sealer) Seal(electionID uuid.UUID, sel domain.Selection) (SealedBallot, error) {
	payload, err := sel.Canonical()
	if err != nil {
		return SealedBallot{}, fmt.Errorf("failed to encode selection: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return SealedBallot{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	h := sha256.New()
	h.Write(electionID[:])
	h.Write(payload)
	h.Write(salt)

	ciphertext, err := s.encrypt(electionID, payload)
	if err != nil {
		return SealedBallot{}, err
	}

	return SealedBallot{
		Hash:       hex.EncodeToString(h.Sum(nil)),
		Ciphertext: ciphertext,
	}, nil
}

// Open decrypts a sealed ballot back into its selection. Used only by the
// tally path.
func (s *Sealer) Open(electionID uuid.UUID, ciphertext []byte) (domain.Selection, error) {
	gcm, err := s.aead(electionID)
	if err != nil {
		return domain.Selection{}, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return domain.Selection{}, fmt.Errorf("ciphertext shorter than nonce")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	payload, err := gcm.Open(nil, nonce, sealed, electionID[:])
	if err != nil {
		return domain.Selection{}, fmt.Errorf("failed to decrypt ballot: %w", err)
	}

	return domain.SelectionFromCanonical(payload)
}

func (s *Sealer) encrypt(electionID uuid.UUID, payload []byte) ([]byte, error) {
	gcm, err := s.aead(electionID)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, payload, electionID[:]), nil
}

func (s *Sealer) aead(electionID uuid.UUID) (cipher.AEAD, error) {
	key := sha256.Sum256(append(append([]byte{}, s.secret...), electionID[:]...))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return gcm, nil
}
