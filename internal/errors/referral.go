package errors

var (
	ErrCodeNotFound = &DomainError{
		Code:    "REFERRAL_NOT_FOUND",
		Message: "invalid referral code",
	}
	ErrCodeAlreadyUsed = &DomainError{
		Code:    "REFERRAL_ALREADY_USED",
		Message: "referral code already used",
	}
	ErrSelfReferral = &DomainError{
		Code:    "SELF_REFERRAL",
		Message: "cannot redeem your own referral code",
	}
)
