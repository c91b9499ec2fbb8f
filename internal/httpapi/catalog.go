package httpapi

import (
	"net/http"

	"dukaan/backend/internal/domain"
)

func (a *API) handleGetShopProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.service.GetShopProfile(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, profile, "")
}

func (a *API) handleUpdateShopProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ShopProfileUpdateRequest
	if !a.decode(w, r, &req) {
		return
	}
	profile, err := a.service.UpdateShopProfile(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, profile, "Shop profile updated")
}

func (a *API) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := a.service.ListBranches(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, branches, "")
}

func (a *API) handleGetBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	branch, err := a.service.GetBranch(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, branch, "")
}

func (a *API) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req domain.BranchRequest
	if !a.decode(w, r, &req) {
		return
	}
	branch, err := a.service.CreateBranch(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, branch, "Branch created")
}

func (a *API) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.BranchRequest
	if !a.decode(w, r, &req) {
		return
	}
	branch, err := a.service.UpdateBranch(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, branch, "Branch updated")
}

func (a *API) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteBranch(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Branch deleted")
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.service.ListCategories(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, categories, "")
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	category, err := a.service.GetCategory(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, category, "")
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.NameRequest
	if !a.decode(w, r, &req) {
		return
	}
	category, err := a.service.CreateCategory(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, category, "Category created")
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.NameRequest
	if !a.decode(w, r, &req) {
		return
	}
	category, err := a.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, category, "Category updated")
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteCategory(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Category deleted")
}

func (a *API) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := a.service.ListBrands(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, brands, "")
}

func (a *API) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	brand, err := a.service.GetBrand(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, brand, "")
}

func (a *API) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req domain.NameRequest
	if !a.decode(w, r, &req) {
		return
	}
	brand, err := a.service.CreateBrand(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, brand, "Brand created")
}

func (a *API) handleUpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.NameRequest
	if !a.decode(w, r, &req) {
		return
	}
	brand, err := a.service.UpdateBrand(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, brand, "Brand updated")
}

func (a *API) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteBrand(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Brand deleted")
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.ProductFilter{
		Query:        q.text("q"),
		CategoryID:   q.id("category_id"),
		LowStockOnly: q.flag("low_stock"),
	}
	if raw := q.text("status"); raw != "" {
		status, err := domain.ParseProductStatus(raw)
		if err != nil {
			q.invalid("status", err.Error())
		}
		filter.Status = status
	}
	if q.err != nil {
		a.fail(w, r, q.err)
		return
	}

	products, err := a.service.ListProducts(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, products, "")
}

func (a *API) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.SearchProducts(r.Context(), newQuery(r).text("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, products, "")
}

func (a *API) handleLowStockProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.service.LowStockProducts(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, products, "")
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	product, err := a.service.GetProduct(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, product, "")
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, product, "Product created")
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.ProductUpdateRequest
	if !a.decode(w, r, &req) {
		return
	}
	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, product, "Product updated")
}

func (a *API) handleToggleProductStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	product, err := a.service.ToggleProductStatus(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, product, "Product status updated")
}

func (a *API) handleUpdateProductStock(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.StockUpdateRequest
	if !a.decode(w, r, &req) {
		return
	}
	adjustment, product, err := a.service.UpdateProductStock(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, map[string]any{
		"product":    product,
		"adjustment": adjustment,
	}, "Stock updated")
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteProduct(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Product deleted")
}
