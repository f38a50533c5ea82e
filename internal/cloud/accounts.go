package cloud

import (
	stderrors "errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// Accounts handles registration, login, and token lookup.
type Accounts struct {
	db *gorm.DB
}

// NewAccounts creates the account service over db.
func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// Register creates an account and its empty configuration, returning the
// account with a fresh bearer token.
func (a *Accounts) Register(email, password string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, errors.WrapWithCode(err, errors.ErrAuth, "Could not hash password", "")
	}

	acct := Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Token:        uuid.NewString(),
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&acct).Error; err != nil {
			return errors.New(errors.ErrAuth,
				"An account with that email already exists",
				"Log in instead, or use a different email.")
		}
		return tx.Create(&Configuration{AccountID: acct.ID}).Error
	})
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Login verifies credentials and rotates the account's bearer token.
func (a *Accounts) Login(email, password string) (Account, error) {
	var acct Account
	if err := a.db.Where("email = ?", email).First(&acct).Error; err != nil {
		return Account{}, invalidCredentials()
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return Account{}, invalidCredentials()
	}

	acct.Token = uuid.NewString()
	if err := a.db.Model(&acct).Update("token", acct.Token).Error; err != nil {
		return Account{}, errors.WrapWithCode(err, errors.ErrAuth, "Could not issue token", "")
	}
	return acct, nil
}

// FindByToken resolves a bearer token to its account.
func (a *Accounts) FindByToken(token string) (Account, error) {
	if token == "" {
		return Account{}, invalidToken()
	}
	var acct Account
	err := a.db.Where("token = ?", token).First(&acct).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return Account{}, invalidToken()
	}
	if err != nil {
		return Account{}, errors.WrapWithCode(err, errors.ErrAuth, "Token lookup failed", "")
	}
	return acct, nil
}

func invalidCredentials() error {
	return errors.New(errors.ErrAuth, "Invalid email or password", "")
}

func invalidToken() error {
	return errors.New(errors.ErrAuth, "Invalid or expired token",
		"Run 'sshdeck login' to sign in again.")
}
