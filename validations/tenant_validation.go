package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainTenant "github.com/moveline/leadgate/domains/tenant"
	pkgError "github.com/moveline/leadgate/pkg/error"
)

func ValidateCreateTenant(ctx context.Context, request domainTenant.CreateTenantRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required, validation.Length(1, 64)),
		validation.Field(&request.DisplayName, validation.Length(0, 128)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateBindChannel(ctx context.Context, request domainTenant.BindChannelRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TenantID, validation.Required),
		validation.Field(&request.Provider, validation.Required,
			validation.In("telegram", "meta", "twilio", "whatsapp")),
		validation.Field(&request.ProviderAccountID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
