package serving

import (
	"encoding/json"
	"net/http"
)

// UserInformationInput is input for /token endpoint
type UserInformationInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is a signed token and its validity
type TokenResponse struct {
	Token    string `json:"token"`
	Duration string `json:"duration"`
}

// readUserInput decodes the body, both username and password are mandatory
func readUserInput(r *http.Request) (UserInformationInput, error) {
	var input UserInformationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, NewServiceUnprocessableEntityError(err.Error())
	} else if len(input.Username) == 0 || len(input.Password) == 0 {
		return input, NewServiceHttpClientError("expecting username and password")
	}

	return input, nil
}

// checkUserAndGenerateTokenHandler returns a token for a known user and password
func checkUserAndGenerateTokenHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	if wrapper.Users == nil {
		return NewServiceInternalServerError("no user store")
	}

	input, errInput := readUserInput(r)
	if errInput != nil {
		return errInput
	} else if found, err := wrapper.Users.CheckUser(wrapper.Ctx, input.Username, input.Password); err != nil {
		return BuildApiErrorFromStorageError(err)
	} else if !found {
		return NewServiceForbiddenError("invalid user")
	}

	secret, errSecret := wrapper.Users.FindSecretForActiveUser(wrapper.Ctx, input.Username)
	if errSecret != nil {
		return BuildApiErrorFromStorageError(errSecret)
	}

	token, errToken := createToken(input.Username, secret)
	if errToken != nil {
		return NewServiceInternalServerError(errToken.Error())
	}

	wrapper.Logger.Infow("token issued", "user", input.Username)
	json.NewEncoder(w).Encode(TokenResponse{Token: token, Duration: TokenDuration.String()})
	return nil
}

// upsertUserHandler creates or changes an user, current user being the creator
func upsertUserHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	creator, auth := wrapper.CurrentUser()
	if !auth {
		return NewServiceForbiddenError("should authenticate")
	}

	if input, err := readUserInput(r); err != nil {
		return err
	} else if err := wrapper.Users.UpsertUser(wrapper.Ctx, creator, input.Username, input.Password); err != nil {
		return BuildApiErrorFromStorageError(err)
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
