// Package auth implements the credential lifecycle for user accounts:
// self contained session tokens, single use email verification and
// password reset tokens, and the account transitions they drive.
//
// Session tokens:
//   - TokenService signs HS256 tokens carrying the login as subject plus
//     id and role claims, and validates them without any store lookup.
//     Validity is signature, issuer and expiry, checked at verification.
//
// One time tokens:
//   - OneTimeTokens is a keyed store of opaque random token values, each
//     bound to one account with an absolute expiry. Consume is an atomic
//     delete-and-return, so a value succeeds exactly once even under
//     concurrent use. Password reset tokens replace on issue: a new
//     token invalidates any outstanding one for the account.
//
// Flows:
//   - RegisterUserHandler, VerifyEmailHandler,
//     InitializePasswordResetHandler and FinalizePasswordResetHandler
//     orchestrate registration, verification and password rotation over
//     the repositories, with notifications as a best-effort follow up
//     reported through distinct error kinds.
//   - Auther verifies credentials through an IdentityProvider and mints
//     session tokens; every authentication failure collapses to a
//     single unauthorized error.
package auth
